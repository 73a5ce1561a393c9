// Package envs is a typed environment-variable registry.
//
// A Registry resolves the current environment name (develop, staging,
// release or any custom tag), loads environment-specific override files and
// lets callers declare the variables they expect once, with per-environment
// defaults, a required flag and a value type. Values are then read back
// through typed accessors.
//
// Resolution order for a registered key, highest first:
//
//  1. the ambient variable of the same name, unless the declaration sets
//     Override to false;
//  2. the per-environment value for the current environment;
//  3. the declared default.
//
// Override files are loaded before registration. With a folder, the
// environment-specific file .{env}.env is loaded first and .env second;
// neither overwrites a variable that is already set.
//
// Typical startup:
//
//	reg := envs.New(envs.WithLogger(logger))
//	err := reg.Init(envs.InitOptions{
//	    Vars: envs.Vars{
//	        {Key: "PORT", Spec: envs.NumberValue(8080)},
//	        {Key: "API_URL", Spec: envs.Options{
//	            Default: "http://localhost:3000",
//	            Env:     map[string]any{envs.Release: "https://api.example.com"},
//	        }},
//	    },
//	})
//	port := reg.GetByNumber("PORT")
//
// The package-level functions operate on a process-wide default registry
// backed by the operating system environment. Registries are not safe for
// concurrent Init or Register calls; run them during startup and read
// afterwards.
package envs
