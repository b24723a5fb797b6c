package dreamweave

// Version of the dreamweave module.
const Version = "0.1.0"
