package prettier

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// Options that never become flags. overrides is applied during discovery;
// the rest only make sense for the JS API.
var skipped = map[string]bool{
	"overrides":    true,
	"filepath":     true,
	"rangeStart":   true,
	"rangeEnd":     true,
	"cursorOffset": true,
}

// Args converts formatter options into prettier CLI arguments. The
// filepath option becomes --stdin-filepath.
func Args(opts formatter.Options) ([]string, error) {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var args []string
	for _, k := range keys {
		if skipped[k] {
			continue
		}
		flag := "--" + kebab(k)
		switch v := opts[k].(type) {
		case nil:
		case bool:
			if v {
				args = append(args, flag)
			} else {
				args = append(args, "--no-"+kebab(k))
			}
		case string:
			args = append(args, flag+"="+v)
		case int:
			args = append(args, flag+"="+strconv.Itoa(v))
		case int64:
			args = append(args, flag+"="+strconv.FormatInt(v, 10))
		case float64:
			args = append(args, flag+"="+strconv.FormatFloat(v, 'f', -1, 64))
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("option %s: unsupported list entry %T", k, item)
				}
				args = append(args, singular(flag)+"="+s)
			}
		case []string:
			for _, s := range v {
				args = append(args, singular(flag)+"="+s)
			}
		default:
			return nil, fmt.Errorf("option %s: unsupported value %T", k, v)
		}
	}

	if p, ok := opts["filepath"].(string); ok && p != "" {
		args = append(args, "--stdin-filepath", p)
	}
	return args, nil
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// singular maps list options to their repeatable flag, e.g. --plugins to
// --plugin.
func singular(flag string) string {
	return strings.TrimSuffix(flag, "s")
}
