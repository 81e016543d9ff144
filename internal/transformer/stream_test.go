package transformer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"purchaseanalytics/internal/datasource/file"
	"purchaseanalytics/internal/parser/csv"
	"purchaseanalytics/internal/schema"
)

func writeTemp(t *testing.T, name, content string) *file.Local {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return file.NewLocal(p)
}

func TestDecodeStream_AcceptsAndRejects(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "order_products.csv",
		"order_id,product_id,add_to_cart_order,reordered\n"+
			"100,1,1,0\n"+
			"101,x,1,1\n"+
			"102,1,2\n"+
			"103,2,1,7\n"+
			"104,2,1,1\n")

	dec, err := NewDecoder(schema.OrderProducts())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var orders []int64
	var rejects []Reject
	counts, err := DecodeStream(context.Background(), src, csv.Options{}, dec,
		func(line int, row Row) error {
			if f := row.Int(3); f != 0 && f != 1 {
				return Rejectf("flag", "unexpected reordered flag %d", f)
			}
			orders = append(orders, row.Int(0))
			return nil
		},
		func(r Reject) { rejects = append(rejects, r) },
	)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}

	if want := []int64{100, 104}; !reflect.DeepEqual(orders, want) {
		t.Fatalf("orders = %v, want %v", orders, want)
	}
	if counts.Read != 5 || counts.Accepted != 2 || counts.Rejected != 3 {
		t.Fatalf("counts = %+v, want read=5 accepted=2 rejected=3", counts)
	}
	if len(counts.HeaderMismatches) != 0 {
		t.Fatalf("unexpected header mismatches: %v", counts.HeaderMismatches)
	}

	wantLines := []int{3, 4, 5}
	for i, r := range rejects {
		if r.Line != wantLines[i] {
			t.Fatalf("reject %d line = %d, want %d", i, r.Line, wantLines[i])
		}
		if r.Source != "order_products.csv" {
			t.Fatalf("reject %d source = %q", i, r.Source)
		}
	}
	if rejects[0].Kind != KindInt || rejects[1].Kind != KindWidth || rejects[2].Kind != "flag" {
		t.Fatalf("kinds = %q %q %q", rejects[0].Kind, rejects[1].Kind, rejects[2].Kind)
	}
	if !strings.Contains(rejects[2].Reason, "unexpected reordered flag 7") {
		t.Fatalf("reject reason = %q", rejects[2].Reason)
	}
	if want := []string{"103", "2", "1", "7"}; !reflect.DeepEqual(rejects[2].Raw, want) {
		t.Fatalf("reject raw = %v, want %v", rejects[2].Raw, want)
	}
}

func TestDecodeStream_HeaderMismatchIsInformational(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "products.csv", "id,name,aisle,department_id\n1,Chips,10,5\n")
	dec, err := NewDecoder(schema.Products())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	n := 0
	counts, err := DecodeStream(context.Background(), src, csv.Options{}, dec,
		func(int, Row) error { n++; return nil }, nil)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if n != 1 || counts.Accepted != 1 {
		t.Fatalf("accepted %d rows, want 1", n)
	}
	if len(counts.HeaderMismatches) != 3 {
		t.Fatalf("HeaderMismatches = %v, want 3 entries", counts.HeaderMismatches)
	}
}

func TestDecodeStream_MalformedQuotingIsRejected(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "products.csv", "a,b,c,d\n1,x\"y,10,5\n2,Soda,10,5\n")
	dec, err := NewDecoder(schema.Products())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	var rejects []Reject
	counts, err := DecodeStream(context.Background(), src, csv.Options{}, dec,
		func(int, Row) error { return nil },
		func(r Reject) { rejects = append(rejects, r) })
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if counts.Read != 2 || counts.Accepted != 1 || counts.Rejected != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if len(rejects) != 1 || rejects[0].Line != 2 || rejects[0].Raw != nil || rejects[0].Kind != KindParse {
		t.Fatalf("rejects = %+v", rejects)
	}
}

func TestDecodeStream_CallbackErrorAborts(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "products.csv", "h1,h2,h3,h4\n1,Chips,10,5\n2,Soda,10,5\n")
	dec, err := NewDecoder(schema.Products())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	boom := errors.New("boom")
	_, err = DecodeStream(context.Background(), src, csv.Options{}, dec,
		func(int, Row) error { return boom }, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("DecodeStream() = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "products.csv line 2") {
		t.Fatalf("error %q lacks source and line", err)
	}
}

func TestDecodeStream_MissingFile(t *testing.T) {
	t.Parallel()

	dec, err := NewDecoder(schema.Products())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	src := file.NewLocal(filepath.Join(t.TempDir(), "nope.csv"))
	_, err = DecodeStream(context.Background(), src, csv.Options{}, dec,
		func(int, Row) error { return nil }, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("DecodeStream() = %v, want os.ErrNotExist", err)
	}
}
