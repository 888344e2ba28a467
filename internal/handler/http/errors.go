package http

import "errors"

var errEmptyToken = errors.New("no token in body or Authorization header")
