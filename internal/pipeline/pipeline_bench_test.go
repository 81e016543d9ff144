package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"purchaseanalytics/internal/config"
)

// BenchmarkRun exercises the full report path on generated inputs: product
// load, order aggregation and report write.
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkRun$ -cpuprofile cpu.out -memprofile mem.out -count=1 ./internal/pipeline
func BenchmarkRun(b *testing.B) {
	const (
		nProducts = 5_000
		nOrders   = 200_000
		nDepts    = 21
	)
	dir := b.TempDir()

	var sb strings.Builder
	sb.WriteString("product_id,product_name,aisle_id,department_id\n")
	for i := 1; i <= nProducts; i++ {
		fmt.Fprintf(&sb, "%d,\"Product %d, family size\",%d,%d\n", i, i, i%134, i%nDepts+1)
	}
	productsPath := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(productsPath, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}

	sb.Reset()
	sb.WriteString("order_id,product_id,add_to_cart_order,reordered\n")
	for i := 0; i < nOrders; i++ {
		fmt.Fprintf(&sb, "%d,%d,%d,%d\n", i/8, i%nProducts+1, i%8+1, i%3%2)
	}
	ordersPath := filepath.Join(dir, "order_products.csv")
	if err := os.WriteFile(ordersPath, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}

	p := config.Default()
	p.Products.Path = productsPath
	p.OrderProducts.Path = ordersPath
	p.Report.Path = filepath.Join(dir, "report.csv")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sum, err := Run(context.Background(), nil, p)
		if err != nil {
			b.Fatalf("Run: %v", err)
		}
		if sum.TotalOrders != nOrders {
			b.Fatalf("TotalOrders = %d, want %d", sum.TotalOrders, nOrders)
		}
	}
}
