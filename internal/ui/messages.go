package ui

import (
	"svnbatch/internal/domain"
	"svnbatch/internal/svn"
)

// batchStepMsg is sent after one batch step finished
type batchStepMsg struct {
	more bool
}

// singleDoneMsg contains the result of a single-path operation
type singleDoneMsg struct {
	op      domain.Operation
	path    string
	outcome svn.Outcome
	err     error
}

// pagerDoneMsg is sent when the ov pager exits
type pagerDoneMsg struct {
	err error
}
