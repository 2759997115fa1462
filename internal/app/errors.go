package service

import "errors"

// ErrNoAnalyser is returned by AnalyseDocument when no analyser was configured.
var ErrNoAnalyser = errors.New("no document analyser configured")
