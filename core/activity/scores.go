package activity

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeScores converts the backing store's raw score field into a ScoreMap.
// The store keeps the field as a JSON-encoded string; older records carry it
// as a plain object, and the inner 4-tuples may themselves be JSON-encoded
// strings. Both forms are accepted here, in one explicit conversion step.
// Inner entries that do not decode to a 4-tuple are dropped, matching the
// tolerant read behavior of historical clients.
func DecodeScores(raw json.RawMessage) (ScoreMap, error) {
	scores := make(ScoreMap)
	if len(raw) == 0 || string(raw) == "null" {
		return scores, nil
	}

	// string-encoded form: unwrap once
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return scores, nil
		}
		raw = json.RawMessage(s)
	}

	var outer map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, errors.Wrap(err, "decoding score map")
	}

	for evaluator, peers := range outer {
		entry := make(map[string]Rating, len(peers))
		for peer, rawRating := range peers {
			r, ok := decodeRating(rawRating)
			if !ok {
				continue
			}
			entry[peer] = r
		}
		scores[evaluator] = entry
	}
	return scores, nil
}

func decodeRating(raw json.RawMessage) (Rating, bool) {
	// string-encoded form: unwrap once
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	var vals []int
	if err := json.Unmarshal(raw, &vals); err != nil || len(vals) != NumCategories {
		return Rating{}, false
	}
	var r Rating
	copy(r[:], vals)
	return r, true
}

// EncodeScores renders a ScoreMap into the JSON-encoded string form the
// backing store keeps, inner 4-tuples included.
func EncodeScores(scores ScoreMap) (string, error) {
	outer := make(map[string]map[string]string, len(scores))
	for evaluator, peers := range scores {
		entry := make(map[string]string, len(peers))
		for peer, r := range peers {
			tuple, err := json.Marshal(r[:])
			if err != nil {
				return "", errors.Wrapf(err, "encoding rating %s -> %s", evaluator, peer)
			}
			entry[peer] = string(tuple)
		}
		outer[evaluator] = entry
	}
	data, err := json.Marshal(outer)
	if err != nil {
		return "", errors.Wrap(err, "encoding score map")
	}
	return string(data), nil
}
