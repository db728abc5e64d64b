package app

import (
	"io"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/modules/concat"
	"github.com/specialistvlad/stagegrid/modules/env_vars"
	"github.com/specialistvlad/stagegrid/modules/fail"
	"github.com/specialistvlad/stagegrid/modules/http_request"
	"github.com/specialistvlad/stagegrid/modules/print"
	"github.com/specialistvlad/stagegrid/modules/s3"
	"github.com/specialistvlad/stagegrid/modules/sleep"
	"github.com/specialistvlad/stagegrid/modules/socketio"
)

// coreModules is the definitive list of all task modules that are compiled
// into the stagegrid binary. The print task writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&print.Module{Out: outW},
		&concat.Module{},
		&sleep.Module{},
		&fail.Module{},
		&http_request.Module{},
		&s3.Module{},
		&socketio.Module{},
	}
}
