package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/mcncl/json2sql/internal/config"
	"github.com/mcncl/json2sql/internal/driver"
	"github.com/mcncl/json2sql/internal/sink"
	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})

	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}

	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < fieldCount; i++ {
		// Mix different types of fields
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			// Nested object
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}

	return result
}

// generateLines renders n documents, one per line
func generateLines(b *testing.B, n int, gen func(i int) interface{}) string {
	b.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		data, err := json.Marshal(gen(i))
		require.NoError(b, err)
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func benchmarkRun(b *testing.B, cfg *config.Config, input string) {
	b.Helper()
	b.SetBytes(int64(len(input)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s := sink.NewWriter("discard", io.Discard)
		_, err := driver.New(cfg, nil).Run(context.Background(), strings.NewReader(input), "bench", s)
		require.NoError(b, err)
		require.NoError(b, s.Close())
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested JSON structures
func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},   // Moderate nesting
		{"Depth5Width2", 5, 2},   // Deep nesting
		{"Depth2Width10", 2, 10}, // Wide but shallow
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			input := generateLines(b, 100, func(int) interface{} {
				return generateNestedJSON(depth.depth, depth.width)
			})
			benchmarkRun(b, config.NewConfig(), input)
		})
	}
}

// BenchmarkWideStructures benchmarks performance with wide JSON structures (many fields)
func BenchmarkWideStructures(b *testing.B) {
	for _, fields := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("Fields%d", fields), func(b *testing.B) {
			input := generateLines(b, 100, func(int) interface{} {
				return generateWideJSON(fields)
			})
			benchmarkRun(b, config.NewConfig(), input)
		})
	}
}

// BenchmarkArrayProcessing benchmarks documents carrying arrays that produce no columns
func BenchmarkArrayProcessing(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Elements%d", size), func(b *testing.B) {
			input := generateLines(b, 50, func(i int) interface{} {
				items := make([]interface{}, size)
				for j := range items {
					items[j] = map[string]interface{}{"sku": fmt.Sprintf("sku-%d", j), "qty": j}
				}
				return map[string]interface{}{"order": i, "tags": []string{"a", "b"}, "items": items}
			})
			cfg := config.NewConfig()
			cfg.Limits.MaxRows = 4096
			benchmarkRun(b, cfg, input)
		})
	}
}

// BenchmarkWorkers compares sequential and parallel line processing
func BenchmarkWorkers(b *testing.B) {
	input := generateLines(b, 2000, func(int) interface{} {
		return generateWideJSON(50)
	})

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("Workers%d", workers), func(b *testing.B) {
			cfg := config.NewConfig()
			cfg.Runtime.Workers = workers
			benchmarkRun(b, cfg, input)
		})
	}
}

// BenchmarkTokenGrowth shows the cost of starting from a tiny token buffer
func BenchmarkTokenGrowth(b *testing.B) {
	input := generateLines(b, 500, func(int) interface{} {
		return generateWideJSON(200)
	})

	for _, initial := range []int{2, 1024} {
		b.Run(fmt.Sprintf("Initial%d", initial), func(b *testing.B) {
			cfg := config.NewConfig()
			cfg.Limits.InitialTokens = initial
			benchmarkRun(b, cfg, input)
		})
	}
}
