package csv

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type captured struct {
	header []string
	lines  []int
	rows   [][]string
	errs   []int
}

func run(t *testing.T, ctx context.Context, input string, opt Options) (captured, error) {
	t.Helper()
	var c captured
	err := Stream(ctx, strings.NewReader(input), opt,
		func(h []string) { c.header = append([]string(nil), h...) },
		func(line int, cells []string) error {
			c.lines = append(c.lines, line)
			c.rows = append(c.rows, append([]string(nil), cells...))
			return nil
		},
		func(line int, err error) { c.errs = append(c.errs, line) },
	)
	return c, err
}

// TestStream_Basic verifies that the header is consumed separately and that
// rows of any width are passed through with their starting line.
func TestStream_Basic(t *testing.T) {
	t.Parallel()

	in := "product_id,product_name,aisle_id,department_id\n1,Chips,10,5\nx,y\n2,\"Soda, diet\",10,5\n"
	c, err := run(t, context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	wantHeader := []string{"product_id", "product_name", "aisle_id", "department_id"}
	if !reflect.DeepEqual(c.header, wantHeader) {
		t.Fatalf("header = %#v, want %#v", c.header, wantHeader)
	}
	wantRows := [][]string{
		{"1", "Chips", "10", "5"},
		{"x", "y"},
		{"2", "Soda, diet", "10", "5"},
	}
	if !reflect.DeepEqual(c.rows, wantRows) {
		t.Fatalf("rows = %#v, want %#v", c.rows, wantRows)
	}
	if !reflect.DeepEqual(c.lines, []int{2, 3, 4}) {
		t.Fatalf("lines = %v, want [2 3 4]", c.lines)
	}
}

func TestStream_StripsBOMAndHonorsComma(t *testing.T) {
	t.Parallel()

	in := "\uFEFFa;b\n1;2\n"
	c, err := run(t, context.Background(), in, Options{Comma: ';'})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if c.header[0] != "a" {
		t.Fatalf("header[0] = %q, want BOM stripped", c.header[0])
	}
	if !reflect.DeepEqual(c.rows, [][]string{{"1", "2"}}) {
		t.Fatalf("rows = %#v", c.rows)
	}
}

func TestStream_MultilineRecordReportsStartLine(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,\"two\nlines\"\n3,4\n"
	c, err := run(t, context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !reflect.DeepEqual(c.lines, []int{2, 4}) {
		t.Fatalf("lines = %v, want [2 4]", c.lines)
	}
}

func TestStream_ParseErrorIsSoft(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\n3,x\"y\n5,6\n"
	c, err := run(t, context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !reflect.DeepEqual(c.errs, []int{3}) {
		t.Fatalf("parse errors at %v, want [3]", c.errs)
	}
	if !reflect.DeepEqual(c.rows, [][]string{{"1", "2"}, {"5", "6"}}) {
		t.Fatalf("rows = %#v", c.rows)
	}

	// LazyQuotes accepts the same record.
	c, err = run(t, context.Background(), in, Options{LazyQuotes: true})
	if err != nil {
		t.Fatalf("Stream(lazy): %v", err)
	}
	if len(c.errs) != 0 || len(c.rows) != 3 {
		t.Fatalf("lazy: errs=%v rows=%#v", c.errs, c.rows)
	}
}

func TestStream_EmptyInput(t *testing.T) {
	t.Parallel()

	c, err := run(t, context.Background(), "", Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if c.header != nil || len(c.rows) != 0 {
		t.Fatalf("empty input produced header=%v rows=%v", c.header, c.rows)
	}
}

func TestStream_HeaderOnly(t *testing.T) {
	t.Parallel()

	c, err := run(t, context.Background(), "a,b\n", Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(c.header) != 2 || len(c.rows) != 0 {
		t.Fatalf("header-only produced header=%v rows=%v", c.header, c.rows)
	}
}

func TestStream_CallbackErrorStops(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Stream(context.Background(), strings.NewReader("h\n1\n2\n3\n"), Options{}, nil,
		func(int, []string) error {
			calls++
			if calls == 2 {
				return boom
			}
			return nil
		}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Stream() = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("onRecord called %d times, want 2", calls)
	}
}

func TestStream_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := run(t, ctx, "a\n1\n", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream() = %v, want context.Canceled", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestStream_IOErrorIsFatal(t *testing.T) {
	t.Parallel()

	err := Stream(context.Background(), failingReader{}, Options{}, nil,
		func(int, []string) error { return nil }, nil)
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("Stream() = %v, want wrapped I/O error", err)
	}
}
