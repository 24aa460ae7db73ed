package testdata

type Broken struct {
	A int
