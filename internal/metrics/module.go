package metrics

import "go.uber.org/fx"

// Module provides a process-wide metrics set.
var Module = fx.Provide(func() *Metrics { return New(nil) })
