package cache

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// binaryPlaceholder stands in for values whose bytes have no useful cache
// identity (uploads, readers). Keying them by content would make identical
// logical requests miss each other, so they collapse to a stable tag.
const binaryPlaceholder = "[binary]"

// KeyFunc derives a fingerprint for a logical request. A caller-supplied
// KeyFunc fully overrides the default algorithm.
type KeyFunc func(method, url string, params any) string

// BuildKey derives the canonical fingerprint of a logical request:
//
//	METHOD:url:sorted-query
//
// Two requests with the same method, URL and semantically equal parameters
// produce the same fingerprint regardless of key insertion order and
// regardless of whether params arrived as a map, an ordered list of pairs,
// or a pre-encoded query string. BuildKey never fails; values that cannot
// be serialized fall back to their default string conversion.
func BuildKey(method, rawURL string, params any) string {
	return strings.ToUpper(method) + ":" + rawURL + ":" + EncodeParams(params)
}

// EncodeParams normalizes params into a deterministic query string (keys
// sorted, values per key sorted). Accepted forms: nil, url.Values,
// map[string]string, map[string]any, [][2]string ordered pairs, or a
// pre-encoded query string.
func EncodeParams(params any) string {
	values := ParamsToValues(params)
	if len(values) == 0 {
		return ""
	}
	// Sort values within each key so multi-valued params are order-stable.
	for _, vs := range values {
		sort.Strings(vs)
	}
	return values.Encode() // Encode sorts by key
}

// ParamsToValues converts any accepted parameter representation into
// url.Values. Unknown types are formatted with fmt and kept under a
// synthetic key so the conversion never fails.
func ParamsToValues(params any) url.Values {
	switch p := params.(type) {
	case nil:
		return url.Values{}
	case url.Values:
		values := url.Values{}
		for key, vs := range p {
			for _, v := range vs {
				values.Add(key, v)
			}
		}
		return values
	case map[string]string:
		values := url.Values{}
		for key, v := range p {
			values.Set(key, v)
		}
		return values
	case map[string]any:
		values := url.Values{}
		for key, v := range p {
			values.Set(key, stringifyValue(v))
		}
		return values
	case [][2]string:
		values := url.Values{}
		for _, pair := range p {
			values.Add(pair[0], pair[1])
		}
		return values
	case string:
		parsed, err := url.ParseQuery(p)
		if err != nil {
			// Unparseable query strings keep their raw form under a
			// synthetic key rather than being dropped.
			return url.Values{"_raw": []string{p}}
		}
		return parsed
	default:
		return url.Values{"_params": []string{stringifyValue(params)}}
	}
}

// stringifyValue renders a single parameter value. Binary payloads reduce
// to a placeholder tag; everything else uses its default string form.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return binaryPlaceholder
	case io.Reader:
		return binaryPlaceholder
	default:
		return fmt.Sprintf("%v", val)
	}
}
