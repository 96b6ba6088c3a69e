package sdk

// Version is the published SDK version.
// 0.3.0: Collapse concurrent sign-in/refresh calls into one shared
// in-flight request so racing callers cannot clobber the token store.
// 0.2.0: Add Diagrams.GenerateC4 with quota-aware prompt validation and
// user-facing status mapping.
// 0.1.0: Initial CIAM session client: anonymous bootstrap, token
// refresh, cookie-blob compatible token bundle persistence.
const Version = "0.3.0"
