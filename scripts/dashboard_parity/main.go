// Command dashboard_parity replays dashboard reads against both the gateway and the
// legacy backend it shadows, and reports response diffs. The gateway wraps payloads in
// an envelope, so only its data field is compared; meta and timing fields are ignored.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target          target
	GatewayStatus   int
	LegacyStatus    int
	StatusMatch     bool
	BodyMatch       bool
	Error           error
	GatewayDuration time.Duration
	LegacyDuration  time.Duration
}

func main() {
	var (
		gatewayBase string
		legacyBase  string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&gatewayBase, "gateway-base", "http://localhost:8080/api/v1", "gateway base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000/api", "legacy backend base URL")
	flag.StringVar(&token, "token", os.Getenv("PARITY_TOKEN"), "bearer token sent to both sides")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "dashboard_parity", "targets.json"), "path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("a session token is required (-token or PARITY_TOKEN)")
	}
	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results  []result
		breaking int
		minor    int
	)
	for _, tgt := range targets {
		res := compare(client, gatewayBase, legacyBase, token, tgt)
		if res.Error != nil || !res.StatusMatch || !res.BodyMatch {
			if tgt.Critical {
				breaking++
			} else {
				minor++
			}
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Breaking diffs: %d, Minor diffs: %d\n", breaking, minor)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compare(client *http.Client, gatewayBase, legacyBase, token string, tgt target) result {
	res := result{Target: tgt}

	gatewayBody, gatewayStatus, gatewayDur, err := fetch(client, gatewayBase, token, tgt.Path)
	res.GatewayDuration = gatewayDur
	if err != nil {
		res.Error = fmt.Errorf("gateway request failed: %w", err)
		return res
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, token, tgt.Path)
	res.LegacyDuration = legacyDur
	if err != nil {
		res.Error = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GatewayStatus = gatewayStatus
	res.LegacyStatus = legacyStatus
	res.StatusMatch = gatewayStatus == legacyStatus
	res.BodyMatch = payloadsEqual(gatewayBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, token, path string) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// payloadsEqual unwraps the gateway envelope, normalizes integral floats, and compares
// the remaining JSON structurally.
func payloadsEqual(gateway, legacy []byte) bool {
	var gj, lj interface{}
	if err := json.Unmarshal(gateway, &gj); err != nil {
		return false
	}
	if err := json.Unmarshal(legacy, &lj); err != nil {
		return false
	}
	if env, ok := gj.(map[string]interface{}); ok {
		if data, ok := env["data"]; ok {
			gj = data
		}
	}
	normalize(&gj)
	normalize(&lj)
	return reflect.DeepEqual(gj, lj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []result) {
	fmt.Println("Dashboard Parity Report")
	fmt.Println("=======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] GET %s\n", status, res.Target.Path)
		fmt.Printf("  Gateway: %d (%s) | Legacy: %d (%s)\n",
			res.GatewayStatus, res.GatewayDuration, res.LegacyStatus, res.LegacyDuration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n",
				res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
