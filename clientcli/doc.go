// Package clientcli provides a client library for driving a stowback server
// over HTTP.
//
// Paths passed to the client are absolute paths on the server's filesystem.
// A trailing slash marks a directory. Archive and restore requests block until
// the server finishes the job and return its record.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://nas:5708"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Archive(ctx, []string{"/srv/photos/"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err = client.Restore(ctx, []string{"/srv/photos/"}, clientcli.RestoreOptions{Replace: true})
//
// Failed requests carry an *APIError. It matches the status sentinels in this
// package (ErrNotFound, ErrBadRequest) and the stowback error named by the
// server's error code:
//
//	if errors.Is(results[0].Err, stowback.ErrObjectNotFound) {
//		// nothing archived for this path yet
//	}
//
// # Profile Configuration
//
// Use profiles to manage several servers:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("nas")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatJobs(os.Stdout, results)
package clientcli
