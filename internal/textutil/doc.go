// Package textutil derives display titles from source media filenames and
// normalizes user-visible text to NFC.
package textutil
