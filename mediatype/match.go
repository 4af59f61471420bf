package mediatype

// Result is the outcome of a successful match: the client entry that won and
// the most specific server entry it matched.
type Result struct {
	Client MediaType
	Server MediaType
}

// Match walks client in order and returns the first entry that matches any
// entry of server. Among the server entries that match that client entry the
// most specific one is reported, earlier entries winning ties. Matching never
// fails other than by returning false.
func Match(server, client []MediaType) (Result, bool) {
	for _, c := range client {
		best := -1

		for i, s := range server {
			if !s.Matches(c) {
				continue
			}

			if best < 0 || s.Specificity() > server[best].Specificity() {
				best = i
			}
		}

		if best >= 0 {
			return Result{Client: c, Server: server[best]}, true
		}
	}

	return Result{}, false
}

// FirstMatch returns the first client entry that matches any server entry.
func FirstMatch(server, client []MediaType) (MediaType, bool) {
	res, ok := Match(server, client)
	return res.Client, ok
}

// Matcher holds a fixed set of server side media types.
type Matcher struct {
	server []MediaType
}

// NewMatcher returns a matcher over the given server side types.
func NewMatcher(server ...MediaType) Matcher {
	return Matcher{server: server}
}

// First returns the first of the candidates that the matcher accepts.
func (m Matcher) First(candidates ...MediaType) (MediaType, bool) {
	return FirstMatch(m.server, candidates)
}

// Matches reports whether any server entry matches c.
func (m Matcher) Matches(c MediaType) bool {
	_, ok := Match(m.server, []MediaType{c})
	return ok
}
