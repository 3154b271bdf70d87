package dispatch

import (
	"fmt"
	"math"
)

// EncodeParams converts Go argument values into the raw uint64 form wasm
// exports receive. Only values with a natural 64-bit representation are
// supported; anything else forces the caller onto the simulation path.
func EncodeParams(args []any) ([]uint64, error) {
	params := make([]uint64, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			params = append(params, 0)
		case bool:
			if v {
				params = append(params, 1)
			} else {
				params = append(params, 0)
			}
		case int:
			params = append(params, uint64(int64(v)))
		case int32:
			params = append(params, uint64(int64(v)))
		case int64:
			params = append(params, uint64(v))
		case uint32:
			params = append(params, uint64(v))
		case uint64:
			params = append(params, v)
		case float32:
			params = append(params, uint64(math.Float32bits(v)))
		case float64:
			params = append(params, math.Float64bits(v))
		default:
			return nil, fmt.Errorf("argument %d: type %T has no wasm parameter encoding", i, arg)
		}
	}
	return params, nil
}
