package http

// widgetHTML is the single-page chat client served at /. It keeps the whole
// conversation server-side; the page only remembers its session id.
const widgetHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>parley</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
  #messages { list-style: none; padding: 0; min-height: 16rem; }
  #messages li { margin: 0.5rem 0; white-space: pre-wrap; }
  #messages li.user { color: #1d4ed8; }
  #messages li.error { color: #b91c1c; }
  #user-input { width: 100%; box-sizing: border-box; min-height: 4rem; }
  #send-button { margin-top: 0.5rem; padding: 0.4rem 1.2rem; }
</style>
</head>
<body>
<h1>parley</h1>
<ul id="messages"></ul>
<textarea id="user-input" placeholder="Type a message..."></textarea>
<button id="send-button">Send</button>
<script>
  const messages = document.getElementById('messages');
  const input = document.getElementById('user-input');
  const button = document.getElementById('send-button');
  let sessionId = '';

  function addLine(text, cls) {
    const li = document.createElement('li');
    li.textContent = text;
    if (cls) li.className = cls;
    messages.appendChild(li);
    li.scrollIntoView();
  }

  async function send() {
    const text = input.value.trim();
    if (!text) return;
    input.value = '';
    addLine('User: ' + text, 'user');
    try {
      const resp = await fetch('/api/chat', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ session_id: sessionId, message: text })
      });
      if (!resp.ok) throw new Error('HTTP ' + resp.status);
      const data = await resp.json();
      sessionId = data.session_id;
      addLine('AI: ' + data.reply.trim());
    } catch (err) {
      addLine('Sorry, there was an error processing your request.', 'error');
    }
  }

  button.addEventListener('click', send);
  input.addEventListener('keydown', (e) => {
    if (e.key === 'Enter' && (e.metaKey || e.ctrlKey)) {
      e.preventDefault();
      send();
    }
  });
</script>
</body>
</html>
`

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Parley API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
