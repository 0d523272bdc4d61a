package stream

import (
	"reflect"
	"testing"
)

// feed pushes chunks through a fresh parser and collects emitted records.
func feed(t *testing.T, chunks ...[]byte) []record {
	t.Helper()
	var p parser
	var got []record
	for _, c := range chunks {
		p.Feed(c, func(rec record) { got = append(got, rec) })
	}
	return got
}

func TestParseSingleRecord(t *testing.T) {
	got := feed(t, []byte("event: price_update\ndata: {\"id\":1,\"price\":9}\n\n"))
	want := []record{{Event: "price_update", Data: `{"id":1,"price":9}`}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseBackToBackRecordsInOneChunk(t *testing.T) {
	got := feed(t, []byte("event: a\ndata: 1\n\nevent: a\ndata: 2\n\n"))
	want := []record{{Event: "a", Data: "1"}, {Event: "a", Data: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseByteAtATime(t *testing.T) {
	input := []byte("event: listing_sold\ndata: {\"id\":42}\n\n")
	var p parser
	var got []record
	for i := range input {
		p.Feed(input[i:i+1], func(rec record) { got = append(got, rec) })
	}
	want := []record{{Event: "listing_sold", Data: `{"id":42}`}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseMultiByteRuneSplitAcrossChunks(t *testing.T) {
	// "çay" in the payload; split inside the two-byte ç sequence.
	whole := []byte("event: message_received\ndata: {\"text\":\"çay\"}\n\n")
	wantRecs := feed(t, whole)

	for cut := 1; cut < len(whole); cut++ {
		got := feed(t, whole[:cut], whole[cut:])
		if !reflect.DeepEqual(got, wantRecs) {
			t.Errorf("cut at %d: got %v, want %v", cut, got, wantRecs)
		}
	}
}

func TestParseDataOverwritesNotAccumulates(t *testing.T) {
	got := feed(t, []byte("event: a\ndata: {\"x\":1}\ndata: {\"x\":2}\n\n"))
	want := []record{{Event: "a", Data: `{"x":2}`}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseEventOverwrites(t *testing.T) {
	got := feed(t, []byte("event: a\nevent: b\ndata: 1\n\n"))
	want := []record{{Event: "b", Data: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseBlankLineWithIncompleteRecordIsNoOp(t *testing.T) {
	// Padding blank lines must not reset a half-built record.
	got := feed(t, []byte("event: a\n\n\ndata: 1\n\n"))
	want := []record{{Event: "a", Data: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseIncompleteRecordNeverDispatches(t *testing.T) {
	if got := feed(t, []byte("data: 1\n\n")); len(got) != 0 {
		t.Errorf("record without event dispatched: %v", got)
	}
	if got := feed(t, []byte("event: a\n\n")); len(got) != 0 {
		t.Errorf("record without data dispatched: %v", got)
	}
}

func TestParseIgnoresOtherLines(t *testing.T) {
	input := ": keep-alive\nid: 7\nretry: 3000\nevent: a\ndata: 1\n\n"
	got := feed(t, []byte(input))
	want := []record{{Event: "a", Data: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseTrimsFields(t *testing.T) {
	got := feed(t, []byte("event:  ping \ndata:  {} \n\n"))
	want := []record{{Event: "ping", Data: "{}"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseRetainsTrailingFragment(t *testing.T) {
	var p parser
	var got []record
	emit := func(rec record) { got = append(got, rec) }

	p.Feed([]byte("event: a\ndata: {\"x\""), emit)
	if len(got) != 0 {
		t.Fatalf("dispatched before record complete: %v", got)
	}
	p.Feed([]byte(":1}\n\n"), emit)

	want := []record{{Event: "a", Data: `{"x":1}`}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFieldsResetAfterDispatch(t *testing.T) {
	// The second record supplies only data; the first record's event type
	// must not leak into it.
	got := feed(t, []byte("event: a\ndata: 1\n\ndata: 2\n\n"))
	want := []record{{Event: "a", Data: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
