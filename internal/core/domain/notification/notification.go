package notification

// DeviceHandle binds a user identity to the opaque token a push channel uses
// to address one installed client.
type DeviceHandle struct {
	UserIdentity string `json:"username"`
	UserType     string `json:"userType,omitempty"`
	Token        string `json:"token"`
}

type RegisterDeviceRequest struct {
	Username string `json:"username" form:"username" query:"username"`
	UserType string `json:"userType" form:"userType" query:"userType"`
	Token    string `json:"new_push_device_token" form:"new_push_device_token" query:"new_push_device_token"`
}

// Message is what a channel delivers to every handle.
type Message struct {
	Title string `json:"messageTitle"`
	Body  string `json:"data"`
}

const broadcastTitle = "Test PUSH Message"

// Rotation is the fixed cycle of canned broadcast bodies.
var Rotation = []Message{
	{Title: broadcastTitle, Body: "This is a test PUSH message"},
	{Title: broadcastTitle, Body: "Hello World!"},
	{Title: broadcastTitle, Body: "How are you doing today?"},
	{Title: broadcastTitle, Body: "Welcome to Handy!"},
	{Title: broadcastTitle, Body: "Someone has requested your service!"},
}

// MessageAt returns the rotation entry for counter.
func MessageAt(counter uint64) Message {
	return Rotation[counter%uint64(len(Rotation))]
}

// DeliveryResult is the per-handle outcome reported by a channel.
type DeliveryResult struct {
	Token string `json:"token"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DispatchReport summarises one broadcast once the channel has answered.
type DispatchReport struct {
	Message   Message          `json:"message"`
	Channel   string           `json:"channel"`
	Results   []DeliveryResult `json:"results"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
	Error     string           `json:"error,omitempty"`
}

// Tally fills Delivered and Failed from Results.
func (r *DispatchReport) Tally() {
	r.Delivered, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.OK {
			r.Delivered++
		} else {
			r.Failed++
		}
	}
}

// Dispatch is the handle returned by a broadcast. Done yields exactly one
// report and is then closed; callers that do not care may ignore it.
type Dispatch struct {
	Message    Message
	Recipients int
	Done       <-chan DispatchReport
}
