package rowmap

import (
	"io"
	"log"
	"testing"

	_ "github.com/Ronmi/rowmap/dialect/sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

type level int

const (
	levelNone level = iota
	levelBronze
	levelSilver
	levelGold
)

var (
	colName  = &Column{Name: "name", MaxLength: 10}
	colNick  = &Column{Name: "NICK", MaxLength: 4}
	colLevel = &Column{Name: "LEVEL"}
	colRev   = &Column{Name: "REV", AutoInsert: true, AutoUpdate: true}
	colTeam  = &Column{Name: "TEAM", Join: true}

	peopleSchema = NewSchema("PEOPLE", "GEN_PEOPLE_ID", colName, colNick, colLevel, colRev, colTeam)
)

type person struct {
	Row
	name  string
	nick  *string
	level level
	rev   int64
	team  string
}

func (p *person) Field(c *Column) interface{} {
	switch c {
	case colName:
		return &p.name
	case colNick:
		return &p.nick
	case colLevel:
		return &p.level
	case colRev:
		return &p.rev
	case colTeam:
		return &p.team
	}
	return nil
}

func (p *person) SetName(v string) bool { return SetField(&p.Row, colName, &p.name, v) }
func (p *person) SetNick(v *string) bool { return SetField(&p.Row, colNick, &p.nick, v) }
func (p *person) SetLevel(v level) bool { return SetField(&p.Row, colLevel, &p.level, v) }
func (p *person) SetRev(v int64) bool { return SetField(&p.Row, colRev, &p.rev, v) }
func (p *person) SetTeam(v string) bool { return SetField(&p.Row, colTeam, &p.team, v) }

func newPeople(c *Connector) *Table[*person] {
	return NewTable(c, peopleSchema, func() *person { return &person{} })
}

var peopleMigrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_people",
			Up: []string{
				`CREATE TABLE PEOPLE (
					ID INTEGER PRIMARY KEY,
					NAME TEXT NOT NULL DEFAULT '',
					NICK TEXT,
					LEVEL INTEGER NOT NULL DEFAULT 0,
					REV INTEGER NOT NULL DEFAULT 1
				)`,
				`CREATE TRIGGER PEOPLE_REV AFTER UPDATE OF NAME, NICK, LEVEL ON PEOPLE
				BEGIN
					UPDATE PEOPLE SET REV = OLD.REV + 1 WHERE ID = NEW.ID;
				END`,
			},
			Down: []string{
				`DROP TRIGGER PEOPLE_REV`,
				`DROP TABLE PEOPLE`,
			},
		},
	},
}

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestConnector connects to a fresh in-memory database with table PEOPLE
// and generator GEN_PEOPLE_ID, which issues 42 at first.
func newTestConnector(t *testing.T) *Connector {
	c := NewConnector()
	c.Logger = quiet()
	if !c.Connect("sqlite3", ":memory:") {
		t.Fatal("cannot connect to in-memory sqlite")
	}
	t.Cleanup(func() { c.Close() })

	if _, err := c.Migrate(peopleMigrations, migrate.Up); err != nil {
		t.Fatalf("cannot migrate test database: %s", err)
	}
	if err := c.CreateGenerator("GEN_PEOPLE_ID", 41, nil); err != nil {
		t.Fatalf("cannot create generator: %s", err)
	}

	return c
}

type traced struct {
	stmt string
	args []interface{}
}

// record collects every statement executed by c
func record(c *Connector) *[]traced {
	ret := &[]traced{}
	c.Trace = func(stmt string, args []interface{}) {
		*ret = append(*ret, traced{stmt, args})
	}
	return ret
}

func mustExec(t *testing.T, c *Connector, stmt string) {
	if err := c.Execute(stmt, nil); err != nil {
		t.Fatalf("cannot execute %s: %s", stmt, err)
	}
}

func strPtr(s string) *string {
	return &s
}
