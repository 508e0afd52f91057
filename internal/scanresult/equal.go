package scanresult

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
)

// Equal reports whether a and b are structurally equal generic JSON values.
// Numbers compare by value, so 1 equals 1.0. Integer literals compare
// exactly, whatever their size.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case Document:
		return Equal(map[string]any(av), b)
	case map[string]any:
		bm, ok := asMap(b)
		if !ok || len(av) != len(bm) {
			return false
		}
		for k, v := range av {
			w, ok := bm[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case []any:
		bs, ok := asSlice(b)
		if !ok || len(av) != len(bs) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bs[i]) {
				return false
			}
		}
		return true
	case []Document:
		s := make([]any, len(av))
		for i, d := range av {
			s[i] = d
		}
		return Equal(s, b)
	case string:
		bs, ok := b.(string)
		return ok && av == bs
	case bool:
		bb, ok := b.(bool)
		return ok && av == bb
	case nil:
		return b == nil
	default:
		an, aok := a.(json.Number)
		bn, bok := b.(json.Number)
		if aok && bok {
			return numbersEqual(an, bn)
		}
		af, aok := asFloat(a)
		bf, bok := asFloat(b)
		return aok && bok && af == bf
	}
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	if isIntLiteral(a) && isIntLiteral(b) {
		ai, aok := new(big.Int).SetString(a.String(), 10)
		bi, bok := new(big.Int).SetString(b.String(), 10)
		return aok && bok && ai.Cmp(bi) == 0
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

// isIntLiteral reports whether n has neither a fraction nor an exponent.
func isIntLiteral(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []Document:
		s := make([]any, len(t))
		for i, d := range t {
			s[i] = d
		}
		return s, true
	default:
		return nil, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
