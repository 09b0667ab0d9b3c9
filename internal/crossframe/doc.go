/*
Package crossframe carries action calls between frames.

A frame exposes actions through a Router. Callers reach those actions through
an Invoker, addressing the target frame by its integer id:

	hub := crossframe.NewHub()
	root := crossframe.NewRouter()
	root.Handle("FrameOffsetForwarder.getOffset", handler)
	hub.Attach(0, root)

	raw, err := hub.Invoke(ctx, 0, "FrameOffsetForwarder.getOffset", crossframe.Params{"frameId": 3})

Params and results always pass through the JSON codec, so an in-process Hub
and the websocket transport in package wsframe behave identically. Errors
returned by a remote handler arrive as *RemoteError.

Lifecycle holds the process-wide "unloaded" flag. Once it is set, callers may
treat channel failures as expected shutdown noise.
*/
package crossframe
