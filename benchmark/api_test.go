package benchmark

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"testing"
)

// The benchmarks run against a live server. INTELLECTA_BENCH_URL is its
// base URL and INTELLECTA_BENCH_TOKEN a bearer token it accepts.
func benchTarget(b *testing.B) (string, string) {
	b.Helper()
	baseURL := os.Getenv("INTELLECTA_BENCH_URL")
	token := os.Getenv("INTELLECTA_BENCH_TOKEN")
	if baseURL == "" || token == "" {
		b.Skip("Set INTELLECTA_BENCH_URL and INTELLECTA_BENCH_TOKEN to run the API benchmarks.")
	}
	return baseURL, token
}

func do(b *testing.B, method, url, token string, body []byte) {
	r, _ := http.NewRequest(method, url, bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		b.Fatal(err)
	}
	_ = resp.Body.Close()
}

func BenchmarkReadEndpoints(b *testing.B) {
	baseURL, token := benchTarget(b)

	b.Run("GET /api/projects", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			do(b, "GET", baseURL+"/api/projects", token, nil)
		}
	})

	b.Run("GET /api/roles", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			do(b, "GET", baseURL+"/api/roles", token, nil)
		}
	})
}

// BenchmarkBulkAdd adds fresh users to INTELLECTA_BENCH_PROJECT, 50 per
// request
func BenchmarkBulkAdd(b *testing.B) {
	baseURL, token := benchTarget(b)
	project := os.Getenv("INTELLECTA_BENCH_PROJECT")
	if project == "" {
		b.Skip("Set INTELLECTA_BENCH_PROJECT to a project id to run the bulk add benchmark.")
	}
	url := fmt.Sprintf("%s/api/projects/%s/users/bulk", baseURL, project)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var body bytes.Buffer
		body.WriteString(`{"user_ids":[`)
		for j := 0; j < 50; j++ {
			if j > 0 {
				body.WriteByte(',')
			}
			fmt.Fprintf(&body, `"bench|%d-%d"`, i, j)
		}
		body.WriteString(`]}`)
		do(b, "POST", url, token, body.Bytes())
	}
}
