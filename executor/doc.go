// Package executor runs one shell command line at a time and keeps the
// output of the most recent run queryable.
//
// A command is handed to the host interpreter as-is (sh -c on unix, cmd /C on
// windows). Execute blocks until the process has exited and both output
// streams are drained. Failures are returned as *CommandError; the captured
// stdout, stderr and exit code of a failed run remain available through the
// Last* accessors:
//
//	ex := executor.New()
//	out, err := ex.Execute(command.Pipe(command.Echo.String()+" A", command.Grep.String()+" -E A"))
//	if err != nil {
//		stderr, _ := ex.LastStderr()
//		code, _ := ex.LastExitCode()
//		...
//	}
package executor
