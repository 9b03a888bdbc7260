package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutRuleIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	doc := []byte(`{"name":"fuse","description":"","lhs_graph":{},"rhs_graph":{}}`)

	id1, err := db.PutRule("fuse", doc)
	if err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	id2, err := db.PutRule("fuse", doc)
	if err != nil {
		t.Fatalf("PutRule again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same document produced different ids %s / %s", id1, id2)
	}
	list, err := db.ListRules()
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("duplicate insert should be ignored, have %d rows", len(list))
	}
}

func TestGetRuleByIDOrName(t *testing.T) {
	db := openTestDB(t)
	doc := []byte(`{"name":"bialgebra"}`)
	id, err := db.PutRule("bialgebra", doc)
	if err != nil {
		t.Fatalf("PutRule: %v", err)
	}

	byID, err := db.GetRule(id)
	if err != nil {
		t.Fatalf("GetRule by id: %v", err)
	}
	byName, err := db.GetRule("bialgebra")
	if err != nil {
		t.Fatalf("GetRule by name: %v", err)
	}
	if byID.ID != byName.ID || string(byID.Document) != string(doc) {
		t.Errorf("lookups disagree: %+v vs %+v", byID, byName)
	}

	if _, err := db.GetRule("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing rule = %v, want ErrNotFound", err)
	}
}

func TestDeleteRule(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.PutRule("gone", []byte(`{"name":"gone"}`)); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	if err := db.DeleteRule("gone"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := db.DeleteRule("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestProofRoundTrip(t *testing.T) {
	db := openTestDB(t)
	doc := []byte(`{"initial_graph":{},"proof_steps":[]}`)
	id, err := db.PutProof("lemma-1", doc)
	if err != nil {
		t.Fatalf("PutProof: %v", err)
	}
	e, err := db.GetProof(id)
	if err != nil {
		t.Fatalf("GetProof: %v", err)
	}
	if e.Name != "lemma-1" || string(e.Document) != string(doc) {
		t.Errorf("stored proof = %+v", e)
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	if v, err := db.GetSetting("snap-to-grid", "true"); err != nil || v != "true" {
		t.Fatalf("unset setting = %q, %v; want fallback", v, err)
	}
	if err := db.SetSetting("snap-to-grid", "false"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := db.SetSetting("snap-to-grid", "yes"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	v, err := db.GetSetting("snap-to-grid", "true")
	if err != nil || v != "yes" {
		t.Errorf("setting = %q, %v; want yes", v, err)
	}
}
