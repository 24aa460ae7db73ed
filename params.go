package rowmap

import (
	sqlDriver "database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

const paramMarker = '@'

// characters splitting statement into tokens when looking for parameters
const paramSeparators = " =,<>()%;\t\n\r"

type param struct {
	name       string // without marker
	start, end int    // byte offset of the token, marker included
}

// scanParams finds all tokens starting with parameter marker, in order of
// appearance.
func scanParams(stmt string) (ret []param) {
	start := -1
	flush := func(end int) {
		if start >= 0 && stmt[start] == paramMarker && end-start > 1 {
			ret = append(ret, param{
				name:  stmt[start+1 : end],
				start: start,
				end:   end,
			})
		}
		start = -1
	}

	for i := 0; i < len(stmt); i++ {
		if strings.IndexByte(paramSeparators, stmt[i]) >= 0 {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(stmt))

	return
}

// paramCache memoizes scanned parameters per statement
type paramCache struct {
	lock  sync.Mutex
	cache *lru.Cache
}

func newParamCache(size int) *paramCache {
	return &paramCache{cache: lru.New(size)}
}

func (c *paramCache) get(stmt string) []param {
	c.lock.Lock()
	defer c.lock.Unlock()

	if v, ok := c.cache.Get(stmt); ok {
		return v.([]param)
	}

	ret := scanParams(stmt)
	c.cache.Add(stmt, ret)
	return ret
}

// rewrite replaces every parameter token with placeholder
func rewrite(stmt string, params []param, placeholder func(pos int) string) string {
	if len(params) == 0 {
		return stmt
	}

	var b strings.Builder
	last := 0
	for pos, p := range params {
		b.WriteString(stmt[last:p.start])
		b.WriteString(placeholder(pos))
		last = p.end
	}
	b.WriteString(stmt[last:])
	return b.String()
}

// positional binds parameters in order of appearance
func positional(args []interface{}) func(pos int, name string) (interface{}, error) {
	return func(pos int, name string) (interface{}, error) {
		if pos >= len(args) {
			return nil, fmt.Errorf("%w: @%s is #%d but got %d", ErrParamCount, name, pos+1, len(args))
		}
		return args[pos], nil
	}
}

// named binds parameters by name
func named(vals map[string]interface{}) func(pos int, name string) (interface{}, error) {
	return func(pos int, name string) (interface{}, error) {
		v, ok := vals[name]
		if !ok {
			return nil, fmt.Errorf("%w: no value for @%s", ErrParamCount, name)
		}
		return v, nil
	}
}

// normalizeArg converts v into value suitable for binding. Valuers are left
// to database/sql, nil pointers become NULL, other pointers are dereferenced
// and named integer types (enums) are converted to their underlying integer.
func normalizeArg(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if _, ok := v.(sqlDriver.Valuer); ok {
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	t := rv.Type()
	if t.PkgPath() == "" {
		// builtin type
		return rv.Interface()
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	}

	return rv.Interface()
}
