// Package ipc defines the message channel between the front end and the host.
//
// Every message is a Frame naming a channel. Request/response channels echo
// the request's ID on the reply; fire-and-forget channels get no reply (or a
// separately named completion event); event channels are pushed by the host.
//
// The Router dispatches inbound frames to the file service and the shell
// bridge on behalf of a Surface, which is one connected front end. The Client
// is the Go counterpart of the front end's side of the channel.
package ipc
