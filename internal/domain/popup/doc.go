/*
Package popup implements popups and the handles used to drive them.

A Popup is either a Local, owned by the frame it is rendered in, or a Proxy,
which forwards every operation to the frame that owns the popup through a
crossframe.Invoker. Both satisfy the same interface, so callers do not need to
know where a popup lives.

# Proxy behavior

Every forwarded operation performs exactly one Invoke with a params record
holding the popup id plus the operation's arguments. When Invoke fails while
the host is unloading, the error is dropped and the operation's default value
is returned instead (false, nil token, invalid size). Operations that have no
meaning across frames (SetParent, SetChild, IsVisibleSync) return
ErrUnsupported, while purely informational accessors return inert values such
as a nil Parent or a FrameRect with Valid set to false.

ContainsPoint and ShowContent translate coordinates into the owner's frame.
The frame offset is cached for a short TTL. The first call waits for the
initial lookup, later calls use the cached value and refresh it in the
background when it has expired. At most one lookup is in flight at a time.

# Factory

Factory owns the Local popups of a frame and registers the PopupFactory.*
actions on a crossframe.Router so that proxies in other frames can reach them.
*/
package popup
