// Package process isolates platform-specific process group handling for
// child processes that may spawn their own children (a renderer service
// driving a headless browser).
package process
