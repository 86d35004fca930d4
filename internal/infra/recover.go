package infra

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

func GoRecoverable(maxPanics int, id string, f func()) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf(`Job "%s" panics with message: %s, %s`, id, err, identifyPanic())
			switch {
			case maxPanics == 0:
				log.Fatalf(`Panics limit exceeded for job "%s", exiting`, id)
			case maxPanics > 0:
				maxPanics--
				log.Debugf(`Recovering job "%s" with max panics left: %d`, id, maxPanics)
				go GoRecoverable(maxPanics, id, f)
			default:
				log.Debugf(`Recovering job "%s"`, id)
				go GoRecoverable(maxPanics, id, f)
			}
		}
	}()
	f()
}

// Recover turns a panic in the calling function into an error stored in errp.
// It must be deferred directly.
func Recover(id string, errp *error) {
	if r := recover(); r != nil {
		at := identifyPanic()
		log.WithFields(log.Fields{"job": id, "at": at}).Errorf("recovered panic: %v", r)
		*errp = fmt.Errorf("%s: panic: %v at %s", id, r, at)
	}
}

func identifyPanic() string {
	var name, file string
	var line int
	var pc [16]uintptr

	n := runtime.Callers(3, pc[:])
	for _, pc := range pc[:n] {
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line = fn.FileLine(pc)
		name = fn.Name()
		if !strings.HasPrefix(name, "runtime.") {
			break
		}
	}

	switch {
	case name != "":
		return fmt.Sprintf("%v:%v", name, line)
	case file != "":
		return fmt.Sprintf("%v:%v", file, line)
	}

	return fmt.Sprintf("pc:%x", pc)
}
