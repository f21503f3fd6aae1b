// Package bootstrap runs a seqkit program under a uniform lifecycle:
// validate config, start components, run hooks, run the task, then stop
// everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(observability.NewTracingComponent(tc))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return demos.Run(ctx, env)
//	})
//
// RunTask cancels the task's context on SIGINT or SIGTERM.
package bootstrap
