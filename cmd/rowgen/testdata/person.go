package testdata

import (
	"time"

	rm "github.com/Ronmi/rowmap"
)

type Person struct {
	rm.Row
	name   string     `col:"NAME,len=40"`
	nick   *string    `col:",len=8"`
	Level  int        `col:"LEVEL"`
	rev    int64      `col:"REV,auto"`
	stamp  time.Time  `col:"STAMP,auto_insert"`
	team   string     `col:"TEAM,join"`
	born   *time.Time `col:"BORN"`
	memo   string
	ignore string `col:"-"`
}

type NoRow struct {
	name string `col:"NAME"`
}

type Dup struct {
	rm.Row
	a string `col:"X"`
	b string `col:"x"`
}

type Slice struct {
	rm.Row
	data []byte `col:"DATA"`
}

type Shadow struct {
	rm.Row
	save bool `col:"SAVED"`
}

type Empty struct {
	rm.Row
	memo string
}
