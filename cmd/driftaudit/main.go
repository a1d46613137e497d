// driftaudit - Cloud configuration drift auditor
// Enumerate. Evaluate. Correct. Done.
package main

func main() {
	Execute()
}
