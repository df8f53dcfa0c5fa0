package nyctid

import "testing"

func TestInferFlushingDirection(t *testing.T) {
	dir, ok := InferFlushingDirection("0123 1200+ TSQ/MST")
	if !ok || dir != "N" {
		t.Fatalf("TSQ->MST: got dir=%q ok=%v, want N/true", dir, ok)
	}

	dir, ok = InferFlushingDirection("0123 1200+ MST/TSQ")
	if !ok || dir != "S" {
		t.Fatalf("MST->TSQ: got dir=%q ok=%v, want S/true", dir, ok)
	}
}

func TestInferFlushingDirection_SameOriginDestination(t *testing.T) {
	if _, ok := InferFlushingDirection("0123 1200+ MST/MST"); ok {
		t.Fatal("origin == destination should return ok=false")
	}
}

func TestInferFlushingDirection_UnknownStop(t *testing.T) {
	if _, ok := InferFlushingDirection("0123 1200+ ZZZ/MST"); ok {
		t.Fatal("unrecognized origin stop should return ok=false")
	}
}

func TestInferFlushingDirection_BadTrainID(t *testing.T) {
	if _, ok := InferFlushingDirection("not a train id"); ok {
		t.Fatal("malformed train id should return ok=false")
	}
}

func TestParseTrainID(t *testing.T) {
	id, err := ParseTrainID("0123 1200+ 5AV/34H")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Origin != "5AV" || id.Destination != "34H" {
		t.Fatalf("unexpected parse: %+v", id)
	}
}
