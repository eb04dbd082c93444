package bytecode

import (
	"fmt"
	"strconv"
)

// FormatValue renders a constant or runtime value the way the language
// prints it. Whole numbers print without a fractional part.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
