package compiler

import _ "embed"

// SupportHeader is the runtime header the emitted translation unit
// includes. It ships with the compiler so a build can write it next to
// the generated C instead of locating an installed copy.
//
//go:embed support.h
var SupportHeader string
