package bcmagic

import _ "embed"

//go:embed static/magic.html
var magicHTML []byte
