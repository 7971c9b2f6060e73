// Command plandiff compares two reallocation plan documents, typically one
// produced by the legacy generator and one by this engine running against
// the same database. Volatile fields (plan id, timestamps) are ignored.
//
// Usage:
//
//	go run ./scripts/plandiff -a legacy_plan.json -b http://localhost:8080/api/v1/reallocations/<id>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"
)

var volatileFields = map[string]struct{}{
	"id":           {},
	"generated_at": {},
}

func main() {
	var (
		pathA   string
		pathB   string
		timeout time.Duration
	)
	flag.StringVar(&pathA, "a", "", "First plan: file path or URL")
	flag.StringVar(&pathB, "b", "", "Second plan: file path or URL")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if pathA == "" || pathB == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: timeout}
	planA, err := loadPlan(client, pathA)
	if err != nil {
		log.Fatalf("failed to load %s: %v", pathA, err)
	}
	planB, err := loadPlan(client, pathB)
	if err != nil {
		log.Fatalf("failed to load %s: %v", pathB, err)
	}

	diffs := comparePlans(planA, planB)
	if len(diffs) == 0 {
		fmt.Println("plans match")
		return
	}
	fmt.Printf("%d difference(s):\n", len(diffs))
	for _, d := range diffs {
		fmt.Printf("  %s\n", d)
	}
	os.Exit(1)
}

func loadPlan(client *http.Client, source string) (map[string]interface{}, error) {
	var raw []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		raw, err = os.ReadFile(source)
		if err != nil {
			return nil, err
		}
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	// API responses wrap the plan in an envelope.
	if data, ok := doc["data"].(map[string]interface{}); ok {
		doc = data
	}
	stripVolatile(doc)
	normalize(doc)
	return doc, nil
}

func stripVolatile(doc map[string]interface{}) {
	for field := range volatileFields {
		delete(doc, field)
	}
}

// normalize coerces whole-number floats to int64 and orders assignment and
// conflict lists so differently-sorted but equivalent plans compare equal.
func normalize(doc map[string]interface{}) {
	var walk func(v *interface{})
	walk = func(v *interface{}) {
		switch val := (*v).(type) {
		case map[string]interface{}:
			for k, v2 := range val {
				walk(&v2)
				val[k] = v2
			}
		case []interface{}:
			for i, v2 := range val {
				walk(&v2)
				val[i] = v2
			}
		case float64:
			if val == float64(int64(val)) {
				*v = int64(val)
			}
		}
	}
	for _, key := range []string{"assignments", "conflicts"} {
		list, ok := doc[key].([]interface{})
		if !ok {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool {
			return fmt.Sprint(list[i]) < fmt.Sprint(list[j])
		})
		doc[key] = list
	}
	var root interface{} = doc
	walk(&root)
}

func comparePlans(a, b map[string]interface{}) []string {
	var diffs []string
	keys := map[string]struct{}{}
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		av, aOK := a[k]
		bv, bOK := b[k]
		switch {
		case !aOK:
			diffs = append(diffs, fmt.Sprintf("%s: only in second plan", k))
		case !bOK:
			diffs = append(diffs, fmt.Sprintf("%s: only in first plan", k))
		case !reflect.DeepEqual(av, bv):
			diffs = append(diffs, fmt.Sprintf("%s: values differ", k))
		}
	}
	return diffs
}
