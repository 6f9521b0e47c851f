package letter

import "errors"

var (
	ErrLetterTemplateNotFound = errors.New("letter template not found")
	ErrLetterForbidden        = errors.New("you are not allowed to manage letter templates")
)
