package ttxtest

// Expected is a normalized model of the variation tables of a font as
// dumped by fontTools' ttx. It only covers the fields needed for tests.
// Tables missing from the dump are nil.
type Expected struct {
	Fvar *ExpectedFvar
	Avar *ExpectedAvar
	MVAR *ExpectedMVAR
}

// ExpectedFvar holds axes and named instances in user coordinates.
type ExpectedFvar struct {
	Axes      []ExpectedAxis
	Instances []ExpectedInstance
}

type ExpectedAxis struct {
	Tag     string
	Min     float64
	Default float64
	Max     float64
	Flags   uint16
	NameID  uint16
}

// ExpectedInstance is a named instance. PostScriptNameID is 0xFFFF if the
// dump has no postscriptNameID attribute.
type ExpectedInstance struct {
	Flags            uint16
	SubfamilyNameID  uint16
	PostScriptNameID uint16
	Coords           map[string]float64
}

// ExpectedAvar holds segment maps keyed by axis tag. Axes with an identity
// mapping have no entry.
type ExpectedAvar struct {
	Segments map[string][]ExpectedMapping
}

type ExpectedMapping struct {
	From, To float64
}

// ExpectedMVAR lists the value records of table MVAR in dump order. VarIdx
// combines outer and inner index as outer<<16 | inner.
type ExpectedMVAR struct {
	Records []ExpectedValueRecord
}

type ExpectedValueRecord struct {
	Tag    string
	VarIdx uint32
}
