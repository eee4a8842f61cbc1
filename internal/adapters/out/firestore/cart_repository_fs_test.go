package firestore

import "testing"

func TestLinesFromData_ArrayShape(t *testing.T) {
	raw := map[string]any{
		"items": []any{
			map[string]any{"productId": "p1", "name": "Serum", "unitPrice": 29.5, "quantity": int64(2)},
			map[string]any{"productId": "p2", "name": "Mask", "unitPrice": int64(8), "qty": int64(1)},
			map[string]any{"productId": "", "quantity": int64(3)},
			map[string]any{"productId": "p1", "unitPrice": 29.5, "quantity": int64(1)},
		},
	}

	got := linesFromData(raw)
	if len(got) != 2 {
		t.Fatalf("lines = %+v", got)
	}
	if got[0].ProductID != "p1" || got[0].Quantity != 3 {
		t.Fatalf("duplicate p1 not merged: %+v", got[0])
	}
	if got[1].UnitPrice != 8 || got[1].Quantity != 1 {
		t.Fatalf("legacy qty / integer price not parsed: %+v", got[1])
	}
}

func TestLinesFromData_LegacyMapShape(t *testing.T) {
	got := linesFromData(map[string]any{"items": map[string]any{"p9": int64(4), "bad": int64(0)}})
	if len(got) != 1 || got[0].ProductID != "p9" || got[0].Quantity != 4 {
		t.Fatalf("lines = %+v", got)
	}
}

func TestLinesFromData_Empty(t *testing.T) {
	if got := linesFromData(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil doc should give an empty snapshot, got %#v", got)
	}
}
