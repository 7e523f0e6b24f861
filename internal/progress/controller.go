package progress

// Controller sequences the two challenges and owns the current view.
type Controller struct {
	state    Progress
	view     View
	open     bool
	onChange func(Progress, View)
}

func NewController(onChange func(Progress, View)) *Controller {
	return &Controller{view: ViewHome, onChange: onChange}
}

func (c *Controller) Progress() Progress { return c.state }
func (c *Controller) View() View         { return c.view }

// ChallengeOpen reports whether the landing page's challenge overlay is up.
func (c *Controller) ChallengeOpen() bool { return c.open && c.view == ViewHome }

// ActiveStage is the challenge the overlay should mount.
func (c *Controller) ActiveStage() Stage { return c.state.Stage() }

// Open raises the challenge overlay from the landing page.
func (c *Controller) Open() {
	if c.view != ViewHome || c.state.Stage() == StageDone {
		return
	}
	c.open = true
	c.notify()
}

// Dismiss closes the overlay without recording anything.
func (c *Controller) Dismiss() {
	if !c.open {
		return
	}
	c.open = false
	c.notify()
}

func (c *Controller) Succeed(stage Stage) {
	if stage != c.state.Stage() {
		return
	}
	c.state = Succeed(c.state)
	c.settle()
}

// Fail records a failed attempt. The overlay stays up so the stage can show
// its own retry card; it closes only when the bot threshold takes over.
func (c *Controller) Fail(stage Stage) {
	c.state = Fail(c.state, stage)
	c.view = Resolve(c.state)
	if c.view != ViewHome {
		c.open = false
	}
	c.notify()
}

// Reset is the bot page's way back: both counters go to zero.
func (c *Controller) Reset() {
	c.state = Progress{}
	c.open = false
	c.view = ViewHome
	c.notify()
}

func (c *Controller) settle() {
	c.open = false
	c.view = Resolve(c.state)
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.state, c.view)
	}
}
