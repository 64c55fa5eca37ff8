// Command cratersurvey detects craters in orbital imagery tiles and
// aggregates/compares detection statistics across imaging sources.
package main

func main() {
	Execute()
}
