package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shortrest/tavernbot/internal/models"
)

func pollFixture(name string, chatID int64) models.Poll {
	return models.Poll{
		Name:      name,
		ChatID:    chatID,
		Question:  "Is this a test?",
		Options:   []string{"yes", "also yes"},
		Frequency: models.FrequencyWeekly,
		Days:      []int{2},
		Anonymous: true,
	}
}

func newPollStore(t *testing.T) (*PollStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polls.json")
	s, err := NewPollStore(path)
	if err != nil {
		t.Fatalf("NewPollStore: %v", err)
	}
	return s, path
}

func TestPollStoreCreateAndGet(t *testing.T) {
	s, _ := newPollStore(t)

	want := pollFixture("game night", -42)
	if err := s.Create(want); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("game night")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestPollStoreRejectsDuplicateName(t *testing.T) {
	s, _ := newPollStore(t)

	if err := s.Create(pollFixture("dupe", -1)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(pollFixture("dupe", -2))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Create duplicate = %v, want ErrConflict", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestPollStoreRejectsIncompleteDefinitions(t *testing.T) {
	s, _ := newPollStore(t)

	noOptions := pollFixture("p", -1)
	noOptions.Options = nil
	if err := s.Create(noOptions); !errors.Is(err, ErrInvalid) {
		t.Errorf("Create without options = %v, want ErrInvalid", err)
	}

	noDays := pollFixture("p", -1)
	noDays.Days = nil
	if err := s.Create(noDays); !errors.Is(err, ErrInvalid) {
		t.Errorf("Create without days = %v, want ErrInvalid", err)
	}

	if err := s.Create(models.Poll{Options: []string{"a"}, Days: []int{1}}); !errors.Is(err, ErrInvalid) {
		t.Error("Create without a name should be invalid")
	}
}

func TestPollStoreDelete(t *testing.T) {
	s, _ := newPollStore(t)

	if err := s.Create(pollFixture("doomed", -1)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(pollFixture("survivor", -1)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete("doomed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	if err := s.Delete("doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestPollStorePersistsAcrossLoads(t *testing.T) {
	s, path := newPollStore(t)

	if err := s.Create(pollFixture("kept", -7)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := NewPollStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get("kept")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.ChatID != -7 {
		t.Errorf("ChatID = %d, want -7", got.ChatID)
	}
}

func TestPollStoreDegradesOnUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polls.json")
	if err := os.WriteFile(path, []byte("this is not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := NewPollStore(path)
	if err == nil {
		t.Fatal("expected a degradation error for an unparseable file")
	}
	if s == nil {
		t.Fatal("degraded store must still be usable")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want empty collection after degradation", s.Len())
	}
	if err := s.Create(pollFixture("fresh", -1)); err != nil {
		t.Errorf("Create on degraded store: %v", err)
	}
}

func TestPollStoreNamesForChat(t *testing.T) {
	s, _ := newPollStore(t)

	for name, chat := range map[string]int64{"b": -1, "a": -1, "other": -2} {
		if err := s.Create(pollFixture(name, chat)); err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
	}

	got := s.NamesForChat(-1)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("NamesForChat(-1) = %v, want [a b]", got)
	}
	if got := s.NamesForChat(-99); len(got) != 0 {
		t.Errorf("NamesForChat(-99) = %v, want none", got)
	}
	if got := s.Names(); !reflect.DeepEqual(got, []string{"a", "b", "other"}) {
		t.Errorf("Names = %v, want sorted full list", got)
	}
}
