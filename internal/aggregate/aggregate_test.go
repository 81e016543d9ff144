package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"purchaseanalytics/internal/datasource/file"
	"purchaseanalytics/internal/products"
	"purchaseanalytics/internal/schema"
	"purchaseanalytics/internal/transformer"
)

const header = "order_id,product_id,add_to_cart_order,reordered\n"

func writeCSV(t *testing.T, content string) *file.Local {
	t.Helper()
	p := filepath.Join(t.TempDir(), "order_products.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return file.NewLocal(p)
}

func lookupOf(pairs ...int64) *products.Lookup {
	l := products.NewLookup()
	for i := 0; i+1 < len(pairs); i += 2 {
		l.Set(pairs[i], pairs[i+1])
	}
	return l
}

func TestRun_EndToEndExample(t *testing.T) {
	t.Parallel()

	src := writeCSV(t, header+"100,1,1,0\n101,2,1,1\n102,1,2,0\n")
	stats, counts, err := Run(context.Background(), src, Config{Schema: schema.OrderProducts()}, lookupOf(1, 5, 2, 5))
	require.NoError(t, err)

	require.Equal(t, []int64{5}, stats.Departments())
	c, ok := stats.Get(5)
	require.True(t, ok)
	require.Equal(t, Counts{Orders: 3, FirstOrders: 2}, c)
	require.Equal(t, 3, counts.Accepted)
	require.Zero(t, counts.Rejected)
}

func TestRun_RejectsRows(t *testing.T) {
	t.Parallel()

	src := writeCSV(t, header+
		"1,50,3,7\n"+ // flag out of domain
		"2,99,1,0\n"+ // unknown product
		"3,x,1,0\n"+ // not digits
		"4,50,1\n"+ // wrong width
		"5,50,1,1\n"+
		"6,60,1,0\n"+
		"7, 60 ,2, 0 \n")

	var rejects []transformer.Reject
	stats, counts, err := Run(context.Background(), src, Config{
		Schema:   schema.OrderProducts(),
		OnReject: func(r transformer.Reject) { rejects = append(rejects, r) },
	}, lookupOf(50, 3, 60, 1))
	require.NoError(t, err)

	require.Equal(t, 7, counts.Read)
	require.Equal(t, 3, counts.Accepted)
	require.Equal(t, 4, counts.Rejected)
	require.Len(t, rejects, 4)
	require.Equal(t, "unexpected reordered flag 7", rejects[0].Reason)
	require.Equal(t, 2, rejects[0].Line)
	require.Equal(t, KindReorderedFlag, rejects[0].Kind)
	require.Equal(t, "product id 99 not found in product table", rejects[1].Reason)
	require.Equal(t, KindUnknownProduct, rejects[1].Kind)

	require.Equal(t, []int64{1, 3}, stats.Departments())
	c1, _ := stats.Get(1)
	require.Equal(t, Counts{Orders: 2, FirstOrders: 2}, c1)
	c3, _ := stats.Get(3)
	require.Equal(t, Counts{Orders: 1, FirstOrders: 0}, c3)

	// Sum of orders equals the accepted rows.
	require.EqualValues(t, counts.Accepted, stats.TotalOrders())
}

func TestRun_DepartmentsComeFromLookup(t *testing.T) {
	t.Parallel()

	lookup := lookupOf(1, 10, 2, 2, 3, 30)
	src := writeCSV(t, header+"1,1,1,0\n2,2,1,1\n3,3,1,1\n4,1,1,1\n")
	stats, _, err := Run(context.Background(), src, Config{Schema: schema.OrderProducts()}, lookup)
	require.NoError(t, err)

	valid := map[int64]bool{}
	for _, d := range lookup.Departments() {
		valid[d] = true
	}
	for _, d := range stats.Departments() {
		require.True(t, valid[d], "department %d not in lookup", d)
		c, _ := stats.Get(d)
		require.LessOrEqual(t, c.FirstOrders, c.Orders)
	}
	// Numeric, not lexical, order.
	require.Equal(t, []int64{2, 10, 30}, stats.Departments())
}

func TestRun_EmptyOrders(t *testing.T) {
	t.Parallel()

	stats, counts, err := Run(context.Background(), writeCSV(t, header), Config{Schema: schema.OrderProducts()}, lookupOf(1, 5))
	require.NoError(t, err)
	require.Zero(t, stats.Len())
	require.Zero(t, counts.Read)
}

func TestRun_MissingReorderedField(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Name: "order_products", Fields: []schema.Field{
		{Name: schema.OrderID, Type: schema.Integer},
		{Name: schema.ProductID, Type: schema.Integer},
	}}
	_, _, err := Run(context.Background(), writeCSV(t, "a,b\n1,2\n"), Config{Schema: s}, lookupOf())
	require.ErrorContains(t, err, "reordered")
}

func TestStats_Add(t *testing.T) {
	t.Parallel()

	s := NewStats()
	_, ok := s.Get(4)
	require.False(t, ok)

	s.Add(4, true)
	s.Add(4, false)
	s.Add(1, false)

	c, ok := s.Get(4)
	require.True(t, ok)
	require.Equal(t, Counts{Orders: 2, FirstOrders: 1}, c)
	require.Equal(t, 2, s.Len())
	require.EqualValues(t, 3, s.TotalOrders())
}
