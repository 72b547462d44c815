package common

import (
	"log"
	"net/http"
	_ "net/http/pprof"
)

// StartPprofServer serves the pprof endpoints on the standard 6060 port.
// Deep schema trees make conversion and fingerprinting allocation-heavy, so
// the heap and cpu profiles are the ones worth pulling here.
// Ref: https://pkg.go.dev/net/http/pprof
func StartPprofServer() {
	go func() {
		log.Println(http.ListenAndServe(":6060", nil))
	}()
}
