package simulator

const (
	workingDir = "/home/user/workspace"

	shortListing = "documents  downloads  pictures  projects"

	longListing = "drwxr-xr-x 2 user user 4096 Jan 15 10:30 documents\n" +
		"drwxr-xr-x 2 user user 4096 Jan 15 10:25 downloads\n" +
		"drwxr-xr-x 2 user user 4096 Jan 15 10:20 pictures\n" +
		"drwxr-xr-x 2 user user 4096 Jan 15 10:15 projects"

	longListingAll = "drwxr-xr-x 3 user user 4096 Jan 15 10:30 .\n" +
		"drwxr-xr-x 5 user user 4096 Jan 15 10:00 ..\n" +
		"-rw-r--r-- 1 user user  220 Jan 15 10:25 .bashrc\n" +
		"drwxr-xr-x 2 user user 4096 Jan 15 10:30 documents\n" +
		"drwxr-xr-x 2 user user 4096 Jan 15 10:25 downloads"

	sampleFileBody = "Hello, World!\nThis is a sample file."
)

func fixed(out string) func(string) Result {
	return func(string) Result { return Result{Output: out} }
}

// rules is evaluated top to bottom; the first match wins.
var rules = []Rule{
	{Name: "pwd", Kind: Exact, Pattern: "pwd", respond: fixed(workingDir)},
	{Name: "ls", Kind: Exact, Pattern: "ls", respond: fixed(shortListing)},
	{Name: "ls-long", Kind: Exact, Pattern: "ls -l", respond: fixed(longListing)},
	{Name: "ls-long-all", Kind: Exact, Pattern: "ls -la", respond: fixed(longListingAll)},
	{Name: "mkdir", Kind: Prefix, Pattern: "mkdir ", respond: func(dir string) Result {
		return Result{Output: "Directory '" + dir + "' created successfully"}
	}},
	{Name: "touch", Kind: Prefix, Pattern: "touch ", respond: func(file string) Result {
		return Result{Output: "File '" + file + "' created successfully"}
	}},
	{Name: "cat", Kind: Prefix, Pattern: "cat ", respond: func(file string) Result {
		return Result{Output: "Contents of " + file + ":\n" + sampleFileBody}
	}},
	{Name: "cp", Kind: Prefix, Pattern: "cp ", respond: fixed("File copied successfully")},
	{Name: "mv", Kind: Prefix, Pattern: "mv ", respond: fixed("File moved/renamed successfully")},
	{Name: "rm", Kind: Prefix, Pattern: "rm ", respond: fixed("File removed successfully")},
	{Name: "chmod", Kind: Prefix, Pattern: "chmod ", respond: fixed("Permissions changed successfully")},
	{Name: "clear", Kind: Exact, Pattern: "clear", respond: func(string) Result { return Result{Clear: true} }},
}
