package clipstore_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipgen/internal/clipstore"
	"clipgen/internal/testsupport"
)

const testID = "0b6f3c2e-8f7d-4c33-9a51-5d2f0f6b1a10"

func sampleRequest() clipstore.Request {
	return clipstore.Request{
		SourceFile:  "Kimi.no.Todoke.S01E05.mkv",
		SourceDir:   "/media/anime",
		Start:       "00:01:02,000",
		End:         "00:01:06,250",
		Query:       "todoke",
		Subtitle:    "  届けたい\n気持ち ",
		Translation: "I want to reach you",
		Confidence:  0.93,
	}
}

func TestCreateDerivesFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)

	record := store.Create(sampleRequest(), testID)

	if record.Title != "Kimi no Todoke - S01E05" {
		t.Fatalf("unexpected title %q", record.Title)
	}
	if record.SourceFile != "/media/anime/Kimi.no.Todoke.S01E05.mkv" {
		t.Fatalf("unexpected source %q", record.SourceFile)
	}
	if record.Duration != "4.250" {
		t.Fatalf("unexpected duration %q", record.Duration)
	}
	if record.Sentence != "届けたい 気持ち" {
		t.Fatalf("unexpected sentence %q", record.Sentence)
	}
	if record.ClipPath != "/clips/"+testID+".mp4" {
		t.Fatalf("unexpected clip path %q", record.ClipPath)
	}
	if record.ThumbnailPath != "" {
		t.Fatalf("thumbnail path should be empty, got %q", record.ThumbnailPath)
	}
	if len(record.Tags) != 1 || record.Tags[0] != clipstore.TagStage1 {
		t.Fatalf("unexpected tags %v", record.Tags)
	}
}

func TestSaveWritesWireFormat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	record := store.Create(sampleRequest(), testID)

	if !store.Save(record) {
		t.Fatal("expected save to succeed")
	}

	data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, testID+".json"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	for _, key := range []string{"id", "title", "sentence", "originalText", "translatedText", "startTime", "endTime", "sourceFile", "clipPath", "createdAt", "duration", "searchQuery", "confidence", "tags"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("expected key %q in %s", key, data)
		}
	}
	if _, ok := raw["thumbnailPath"]; ok {
		t.Fatalf("thumbnailPath should be absent before stage 2: %s", data)
	}
}

func TestSaveRejectsInvalidID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	record := store.Create(sampleRequest(), "../escape")
	if store.Save(record) {
		t.Fatal("expected save with invalid id to fail")
	}
}

func TestLoadAllSkipsCorruptFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	if !store.Save(store.Create(sampleRequest(), testID)) {
		t.Fatal("save failed")
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.OutputDir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.OutputDir, "noid.json"), []byte(`{"title":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	records := store.LoadAll()
	if len(records) != 1 || records[0].ID != testID {
		t.Fatalf("expected only the valid record, got %+v", records)
	}
}

func TestLoadAllMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "absent")
	if got := clipstore.NewStore(cfg, nil).LoadAll(); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestIsDuplicateExactTriple(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	existing := []clipstore.ClipMetadata{store.Create(sampleRequest(), testID)}

	if !clipstore.IsDuplicate(sampleRequest(), existing) {
		t.Fatal("expected identical request to be a duplicate")
	}

	shifted := sampleRequest()
	shifted.End = "00:01:06.250"
	if clipstore.IsDuplicate(shifted, existing) {
		t.Fatal("string comparison must not treat a different separator as equal")
	}

	absolute := sampleRequest()
	absolute.SourceDir = ""
	absolute.SourceFile = "/media/anime/Kimi.no.Todoke.S01E05.mkv"
	if !clipstore.IsDuplicate(absolute, existing) {
		t.Fatal("expected resolved source path to match")
	}
}

func TestRelativeSourceResolvesToAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	relative := clipstore.Request{SourceFile: "media/movie.mkv", Start: "00:00:01,000", End: "00:00:03,000", Subtitle: "hola"}
	record := store.Create(relative, testID)

	want := filepath.Join(wd, "media", "movie.mkv")
	if record.SourceFile != want {
		t.Fatalf("SourceFile = %q, want %q", record.SourceFile, want)
	}

	absolute := relative
	absolute.SourceFile = want
	if !clipstore.IsDuplicate(absolute, []clipstore.ClipMetadata{record}) {
		t.Fatal("expected absolute form of a relative source to be a duplicate")
	}

	relDir := clipstore.Request{SourceFile: "movie.mkv", SourceDir: "media", Start: relative.Start, End: relative.End}
	if got := relDir.Source(); got != want {
		t.Fatalf("relative SourceDir resolved to %q, want %q", got, want)
	}
}

func TestUpdateAdvancesTags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	record := store.Create(sampleRequest(), testID)
	record.Tags = append(record.Tags, "favourite")
	if !store.Save(record) {
		t.Fatal("save failed")
	}

	thumb := cfg.ThumbnailPublicPath(testID)
	updated, ok := store.Update(record, clipstore.Patch{ThumbnailPath: &thumb, AdvanceTo: clipstore.TagStage2})
	if !ok {
		t.Fatal("expected stage 2 update")
	}
	if updated.Stage() != clipstore.TagStage2 || updated.HasTag(clipstore.TagStage1) {
		t.Fatalf("unexpected tags %v", updated.Tags)
	}
	if !updated.HasTag("favourite") {
		t.Fatalf("expected unrelated tag preserved, got %v", updated.Tags)
	}

	completed, ok := store.Update(updated, clipstore.Patch{AdvanceTo: clipstore.TagCompleted})
	if !ok {
		t.Fatal("expected completion")
	}
	if _, ok := store.Update(completed, clipstore.Patch{AdvanceTo: clipstore.TagStage2}); ok {
		t.Fatal("expected regression to be refused")
	}

	stored, err := store.Get(testID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Stage() != clipstore.TagCompleted || len(stored.Tags) != 2 {
		t.Fatalf("unexpected stored tags %v", stored.Tags)
	}
	if stored.ThumbnailPath != thumb {
		t.Fatalf("unexpected thumbnail path %q", stored.ThumbnailPath)
	}
}

func TestUpdateFromUntaggedToCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	record := store.Create(sampleRequest(), testID)

	updated, ok := store.Update(record, clipstore.Patch{AdvanceTo: clipstore.TagCompleted})
	if !ok {
		t.Fatal("expected stage 1 record to complete directly")
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != clipstore.TagCompleted {
		t.Fatalf("expected only completed tag, got %v", updated.Tags)
	}
}

func TestGetAndDelete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)

	if _, err := store.Get(testID); !errors.Is(err, clipstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get("not-a-uuid"); !errors.Is(err, clipstore.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	record := store.Create(sampleRequest(), testID)
	record.ThumbnailPath = cfg.ThumbnailPublicPath(testID)
	if !store.Save(record) {
		t.Fatal("save failed")
	}
	testsupport.WriteFile(t, cfg.ClipFilePath(testID), 16)
	testsupport.WriteFile(t, cfg.ThumbnailFilePath(testID), 16)

	if !store.Delete(testID) {
		t.Fatal("expected delete to succeed")
	}
	for _, path := range []string{cfg.ClipFilePath(testID), cfg.ThumbnailFilePath(testID), filepath.Join(cfg.Paths.OutputDir, testID+".json")} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed, stat err=%v", path, err)
		}
	}
	if store.Delete(testID) {
		t.Fatal("expected second delete to report false")
	}
}

func TestFilterByTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := clipstore.NewStore(cfg, nil)
	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
	}
	for i, id := range ids {
		req := sampleRequest()
		req.Start = []string{"00:00:01,000", "00:00:05,000"}[i]
		if !store.Save(store.Create(req, id)) {
			t.Fatal("save failed")
		}
	}
	first, err := store.Get(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Update(first, clipstore.Patch{AdvanceTo: clipstore.TagCompleted}); !ok {
		t.Fatal("update failed")
	}

	completed := store.FilterByTag(clipstore.TagCompleted)
	if len(completed) != 1 || completed[0].ID != ids[0] {
		t.Fatalf("unexpected completed set %+v", completed)
	}
	if pending := store.FilterByTag(clipstore.TagStage1); len(pending) != 1 || pending[0].ID != ids[1] {
		t.Fatalf("unexpected stage-1 set %+v", pending)
	}
}
