package branding

import "go.uber.org/fx"

// Module provides the branding repository to Fx.
var Module = fx.Provide(NewRepository)
