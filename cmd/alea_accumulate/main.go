// alea_accumulate reads a stream of vector samples and accumulates them into
// a statistical estimator, optionally persisting the result.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
