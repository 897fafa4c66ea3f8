package conditions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// HTTPSource fetches a full conditions snapshot from a model feed
// endpoint serving a JSON object keyed by reach id:
//
//	{"1234": {"velocity_mps": 0.8, "streamflow_m3s": 12.5}, ...}
func HTTPSource(url string, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (map[int64]Conditions, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("conditions feed returned %s", resp.Status)
		}

		var raw map[string]struct {
			VelocityMPS   float64 `json:"velocity_mps"`
			StreamflowM3S float64 `json:"streamflow_m3s"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode conditions feed: %w", err)
		}

		snapshot := make(map[int64]Conditions, len(raw))
		for key, v := range raw {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad reach id %q in conditions feed", key)
			}
			snapshot[id] = Conditions{VelocityMPS: v.VelocityMPS, StreamflowM3S: v.StreamflowM3S}
		}
		return snapshot, nil
	}
}
