// Package loader reads arrangements from JSON, YAML and HCL files.
//
// JSON files hold a top-level array of arrangements. YAML files hold the
// same array under the top-level key "arrangements". Both are checked
// against an embedded JSON Schema before they are decoded:
//
//	[
//	  {
//	    "name": "checkout",
//	    "stages": [["1", "2"], ["1,2:3"]],
//	    "tasks": {
//	      "1": {"impl": "print", "retries": 1, "timeout": 500,
//	            "params": [{"name": "message", "type": "STRING", "value": "hi"}]}
//	    }
//	  }
//	]
//
// HCL files declare one block per arrangement:
//
//	arrangement "checkout" {
//	  stages = [["1", "2"], ["1,2:3"]]
//
//	  task "1" {
//	    impl    = "print"
//	    timeout = 500
//	    param "message" {
//	      type  = "STRING"
//	      value = "hi"
//	    }
//	  }
//	}
//
// Timeouts are milliseconds. Omitted retries default to 0 and omitted
// timeouts to config.DefaultTimeout.
package loader
