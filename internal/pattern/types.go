package pattern

import "regexp"

// One resolved file spec: a directory to watch plus a compiled basename matcher
type Spec struct {
	Directory   string // watched directory (cleaned, no trailing separator)
	Prefix      string // basename prefix
	TimePattern string // strftime-style pattern
	Suffix      string // optional basename suffix
	Topic       string // destination topic
	expr        *regexp.Regexp
}

// Registry of resolved specs grouped by watched directory
type Registry struct {
	byDir map[string][]*Spec
}
