package cas

import (
	"encoding/json"
	"testing"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	a, err := CanonicalJSON(map[string]interface{}{"b": 1, "a": []interface{}{map[string]interface{}{"z": 1, "y": 2}}})
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	want := `{"a":[{"y":2,"z":1}],"b":1}`
	if string(a) != want {
		t.Errorf("canonical form = %s, want %s", a, want)
	}
}

func TestDocumentIDStableAcrossFieldOrder(t *testing.T) {
	id1, err := DocumentIDHex("rule", json.RawMessage(`{"name":"fuse","description":"d"}`))
	if err != nil {
		t.Fatalf("DocumentIDHex: %v", err)
	}
	id2, err := DocumentIDHex("rule", json.RawMessage(`{"description":"d","name":"fuse"}`))
	if err != nil {
		t.Fatalf("DocumentIDHex: %v", err)
	}
	if id1 != id2 {
		t.Error("field order must not change the document id")
	}
	id3, _ := DocumentIDHex("proof", json.RawMessage(`{"name":"fuse","description":"d"}`))
	if id1 == id3 {
		t.Error("different kinds must hash differently")
	}
}
