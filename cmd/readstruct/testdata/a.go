package testdata

import (
	"time"

	"github.com/Ronmi/rowmap"
)

type level int

type A struct {
	rowmap.Row
	Name    string     `col:"NAME,len=40"`
	nick    *string    `col:"NICK,len=8"`
	Level   level      `col:"LEVEL"`
	Rev     int64      `col:"REV,auto"`
	Team    string     `col:"TEAM,join"`
	Born    *time.Time `col:"BORN"`
	Avatar  []byte     `col:"AVATAR"`
	x, y    int
	Friends map[string]int
	Nested  struct{ X int }
}

type B struct {
	*A
	ID int
}

type notStruct int

type Generic[T any] struct {
	V T
}
