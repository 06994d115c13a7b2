// kevwatch tracks the CISA Known Exploited Vulnerabilities catalog,
// persisting new entries locally and alerting webhooks when they appear.
package main

import "github.com/kevwatch/kevwatch/cmd"

func main() {
	cmd.Execute()
}
