package testdata

type X struct {
	V int
}
