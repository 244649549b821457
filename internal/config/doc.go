// Package config loads ripple.toml and RIPPLE_* environment overrides.
//
// # Configuration File Structure
//
//	log_level = "info"
//
//	[metrics]
//	enabled = true
//	namespace = "ripple"
//
//	[serve]
//	addr = "localhost:8080"
//	tick_interval = "1s"
//
//	[tracing]
//	tracer_name = "ripple/hook"
//
// Every key can be overridden from the environment. Nested tables use
// their name as part of the variable: RIPPLE_LOG_LEVEL, RIPPLE_SERVE_ADDR,
// RIPPLE_SERVE_TICK_INTERVAL, RIPPLE_METRICS_NAMESPACE and so on.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Println("Addr:", cfg.Serve.Addr)
package config
