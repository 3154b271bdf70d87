package app

import (
	"github.com/vk/modgridgo/internal/registry"
	"github.com/vk/modgridgo/modules/filestore"
	"github.com/vk/modgridgo/modules/mailer"
	"github.com/vk/modgridgo/modules/selfref"
	"github.com/vk/modgridgo/modules/textgen"
)

// coreRegistrars is the definitive list of first-party modules compiled
// into the binary. The config snapshot decides which of them actually load.
var coreRegistrars = []registry.Registrar{
	&textgen.Module{},
	&filestore.Module{},
	&mailer.Module{},
	&selfref.Module{},
}
