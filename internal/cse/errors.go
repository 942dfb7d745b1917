package cse

// rtError is raised via panic from deep inside the machine's dispatch
// loop and recovered once at the top of Run. A panic/recover boundary
// is simpler here than threading an error return through every level
// of control-frame processing.
type rtError struct {
	msg string
}

func (e rtError) Error() string { return e.msg }

func fail(msg string) {
	panic(rtError{msg})
}
